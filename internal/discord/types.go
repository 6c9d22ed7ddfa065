package discord

import "encoding/json"

// Интенты шлюза (https://discord.com/developers/docs/topics/gateway#gateway-intents).
const (
	IntentGuilds         = 1 << 0
	IntentGuildMembers   = 1 << 1 // привилегированный: нужен для списка участников
	IntentGuildMessages  = 1 << 9
	IntentDirectMessages = 1 << 12
	IntentMessageContent = 1 << 15 // привилегированный: без него content пустой

	DefaultIntents = IntentGuilds | IntentGuildMembers | IntentGuildMessages |
		IntentDirectMessages | IntentMessageContent
)

// Опкоды шлюза.
const (
	opDispatch            = 0
	opHeartbeat           = 1
	opIdentify            = 2
	opPresenceUpdate      = 3
	opResume              = 6
	opReconnect           = 7
	opRequestGuildMembers = 8
	opInvalidSession      = 9
	opHello               = 10
	opHeartbeatACK        = 11
)

type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Bot           bool   `json:"bot,omitempty"`
}

// Fullname: username#discriminator; именно по нему API бронирования узнаёт пользователя.
func (u User) Fullname() string {
	return u.Username + "#" + u.Discriminator
}

type Member struct {
	User *User  `json:"user"`
	Nick string `json:"nick,omitempty"`
}

const (
	ChannelGuildText = 0
	ChannelDM        = 1
)

type Channel struct {
	ID      string `json:"id"`
	Type    int    `json:"type"`
	Name    string `json:"name,omitempty"`
	GuildID string `json:"guild_id,omitempty"`
}

type Guild struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Unavailable bool      `json:"unavailable,omitempty"`
	MemberCount int       `json:"member_count,omitempty"`
	Members     []Member  `json:"members,omitempty"`
	Channels    []Channel `json:"channels,omitempty"`
}

type Message struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id,omitempty"`
	Author    User   `json:"author"`
	Content   string `json:"content"`
}

// IsDirect: сообщение пришло в личку (у DM нет guild_id).
func (m Message) IsDirect() bool {
	return m.GuildID == ""
}

// ========================= payload'ы шлюза =========================

type payload struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d"`
	S  *int64          `json:"s,omitempty"`
	T  string          `json:"t,omitempty"`
}

type outgoing struct {
	Op int `json:"op"`
	D  any `json:"d"`
}

type helloData struct {
	HeartbeatInterval int64 `json:"heartbeat_interval"`
}

type identifyData struct {
	Token      string             `json:"token"`
	Intents    int                `json:"intents"`
	Properties identifyProperties `json:"properties"`
}

type identifyProperties struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

type resumeData struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	Seq       int64  `json:"seq"`
}

type readyData struct {
	User             User   `json:"user"`
	SessionID        string `json:"session_id"`
	ResumeGatewayURL string `json:"resume_gateway_url"`
}

type presenceData struct {
	Since      *int64     `json:"since"`
	Activities []activity `json:"activities"`
	Status     string     `json:"status"`
	AFK        bool       `json:"afk"`
}

type activity struct {
	Name string `json:"name"`
	Type int    `json:"type"`
}

type requestMembersData struct {
	GuildID string `json:"guild_id"`
	Query   string `json:"query"`
	Limit   int    `json:"limit"`
}

type guildMembersChunk struct {
	GuildID string   `json:"guild_id"`
	Members []Member `json:"members"`
}

type guildMemberEvent struct {
	GuildID string `json:"guild_id"`
	User    *User  `json:"user"`
}

type guildDelete struct {
	ID          string `json:"id"`
	Unavailable bool   `json:"unavailable"`
}
