package models

import "time"

// BotName is the sender of every system generated message.
const BotName = "Admin"

const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
)

type User struct {
	ID          int64  `json:"id,string,omitempty"`
	Email       string `json:"email,omitempty"`
	UserName    string `json:"username"`
	DisplayName string `json:"name"`
	Password    []byte `json:"-"`
}

type Room struct {
	ID        int64  `json:"id,string"`
	Name      string `json:"name"`
	Creator   string `json:"creator"`
	CreatedAt int64  `json:"createdAt"`
}

// ActivePresence binds one live connection to a user and a room.
type ActivePresence struct {
	ConnectionID int64  `json:"id,string"`
	UserName     string `json:"username"`
	DisplayName  string `json:"name"`
	Room         string `json:"room"`
	JoinedAt     int64  `json:"joinedAt"`
}

type Message struct {
	ID           int64  `json:"id,string,omitempty"`
	ConnectionID int64  `json:"connectionID,string,omitempty"`
	UserName     string `json:"username"`
	DisplayName  string `json:"name"`
	Text         string `json:"text"`
	Room         string `json:"room,omitempty"`
	Time         string `json:"time"`
	Date         string `json:"date"`
	Type         string `json:"type"`
	Typing       bool   `json:"typing,omitempty"`
	FileName     string `json:"filename,omitempty"`
	OriginalName string `json:"originalname,omitempty"`
	Path         string `json:"path,omitempty"`
	CreatedAt    int64  `json:"createdAt,omitempty"`
}

// Upload is a file that was written to the upload directory.
type Upload struct {
	FileName     string
	OriginalName string
	Path         string
	ContentType  string
}

type ResetLink struct {
	Token     string
	UserName  string
	CreatedAt time.Time
}

type RoomUsers struct {
	Room  string           `json:"room"`
	Users []ActivePresence `json:"users"`
}

// DeleteKey identifies a removed message for every client rendering it.
type DeleteKey struct {
	ID       int64  `json:"id,string"`
	FileName string `json:"filename,omitempty"`
}

// Flash is the per-response status payload shown to the user.
type Flash struct {
	Success string `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

type ConfigFile struct {
	Address           string
	Port              string
	PublicURL         string
	BehindNginx       bool
	TlsCert           string
	TlsKey            string
	PrintHttpRequests bool
	LogToFile         bool
	LogLevel          string
	JwtSecret         string
	SnowflakeWorkerID int64
	SelfContained     bool
	SqlitePath        string
	DbUser            string
	DbPassword        string
	DbAddress         string
	DbPort            string
	DbDatabase        string
	RedisAddress      string
	RedisPassword     string
	RedisDB           int
	SmtpUsername      string
	SmtpPassword      string
	SmtpServer        string
	SmtpPort          int
	SmtpSender        string
	Timezone          string
	TypingTimeout     time.Duration
	UploadDir         string
	MaxUploadBytes    int64
	PingInterval      time.Duration
	PongWait          time.Duration
	WriteWait         time.Duration
	MaxMessageSize    int64
}
