// Command token mints an access token for operators and integration scripts.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/cmlabs-hris/attendance-engine/internal/config"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/joho/godotenv"
)

func main() {
	subject := flag.String("sub", "operator", "token subject")
	employeeID := flag.String("employee", "", "employee id the token is scoped to")
	admin := flag.Bool("admin", false, "grant admin privileges")
	flag.Parse()

	_ = godotenv.Load()
	var cfg config.JWTConfig
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, "parse environment:", err)
		os.Exit(1)
	}
	if cfg.Secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET_KEY is required")
		os.Exit(1)
	}
	if !*admin && *employeeID == "" {
		fmt.Fprintln(os.Stderr, "either -admin or -employee must be set")
		os.Exit(1)
	}

	claims := jwt.Claims{Subject: *subject, IsAdmin: *admin}
	if *employeeID != "" {
		claims.EmployeeID = employeeID
	}

	token, exp, err := jwt.NewJWTService(cfg.Secret, cfg.AccessExpiration).GenerateAccessToken(claims)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate token:", err)
		os.Exit(1)
	}
	fmt.Println(token)
	fmt.Fprintln(os.Stderr, "expires at", exp)
}
