package auth

// Messages returned to API callers. Login failures share one message so a caller
// cannot tell an unknown email from a wrong password.
const (
	MissingRegisterFieldsMsg = "Please provide username, email and password"
	MissingLoginFieldsMsg    = "Please provide email and password"
	InvalidEmailMsg          = "Please enter a valid email address"
	EmailRegisteredMsg       = "Email is already registered"
	InvalidCredentialsMsg    = "Invalid email or password"
	NoRefreshTokenMsg        = "No refresh token"
	InvalidRefreshTokenMsg   = "Invalid refresh token"
	UserNotFoundMsg          = "User not found"
	NotAuthorizedMsg         = "Not authorized"
	InvalidAccessTokenMsg    = "Invalid or expired token"
)
