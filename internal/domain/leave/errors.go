package leave

import "errors"

var ErrGrantNotAllowed = errors.New("substitute and compensatory leave accrue from work and cannot be granted")
