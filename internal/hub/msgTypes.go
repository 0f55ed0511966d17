package hub

// client -> server
const (
	JoinRoom      = "joinRoom"
	LeaveRoom     = "leaveRoom"
	ChatMessage   = "chatMessage"
	Typing        = "typing"
	NotTyping     = "notTyping"
	DeleteMessage = "deleteMessage"
	DeleteFile    = "deleteFile"
	Image         = "image"
)

// server -> client, DeleteMessage, DeleteFile and Image are shared
const (
	Message         = "message"
	RoomUsers       = "roomUsers"
	DeleteTypingMsg = "deleteTypingMsg"
	Error           = "error"
)
