package types

// GameError is an error with a stable wire tag. The tag string is what
// clients receive in Error responses, so values here must never change.
type GameError string

func (e GameError) Error() string { return string(e) }

var (
	ErrMalformedMessage  GameError = "MalformedMessage"
	ErrInvalidToken      GameError = "InvalidToken"
	ErrInvalidNameLength GameError = "InvalidNameLength"
	ErrUsernameTaken     GameError = "UsernameTaken"
	ErrInappropriateName GameError = "InappropriateName"
	ErrNotJoinable       GameError = "NotJoinable"
	ErrCapacityReached   GameError = "CapacityReached"
	ErrUnknownPlayer     GameError = "UnknownPlayer"
	ErrUnexpected        GameError = "Unexpected"
	ErrInvalidPermission GameError = "InvalidPermission"
	ErrUnexpectedMessage GameError = "UnexpectedMessage"
	ErrInvalidAnswer     GameError = "InvalidAnswer"
)
