package discord

// ========================= high-level API  =========================

// SetActivity: статус online и "Playing <text>" (opcode 3).
func (c *Client) SetActivity(text string) error {
	return c.send(opPresenceUpdate, presenceData{
		Activities: []activity{{Name: text, Type: 0}},
		Status:     "online",
	})
}

// RequestGuildMembers просит шлюз прислать всех участников гильдии
// (придут чанками GUILD_MEMBERS_CHUNK, нужен интент GUILD_MEMBERS).
func (c *Client) RequestGuildMembers(guildID string) error {
	return c.send(opRequestGuildMembers, requestMembersData{GuildID: guildID})
}
