package errors

var (
	// Users
	ErrUserNotFound  = NotFound("user not found")
	ErrUsernameTaken = AlreadyExists("username is already registered")
	ErrEmailTaken    = AlreadyExists("email is already registered")

	// Friend graph
	ErrSelfReference      = InvalidArg("cannot befriend yourself")
	ErrAlreadyFriends     = AlreadyExists("already friends")
	ErrRequestPending     = AlreadyExists("friend request already pending")
	ErrNoSuchRequest      = NotFound("no friend request from this user")
	ErrNoSuchRelationship = NotFound("no relationship with this user")

	// Chats and messages
	ErrNotFriends     = FailedPrecondition("users are not friends")
	ErrChatNotFound   = NotFound("chat not found")
	ErrNotParticipant = Forbidden("not a participant of this chat")
	ErrEmptyBody      = InvalidArg("message body cannot be empty")
	ErrBodyTooLong    = InvalidArg("message body exceeds 2500 characters")
)
