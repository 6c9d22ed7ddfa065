package discord

import (
	"sort"
	"sync"
)

// State: кэш гильдий, каналов и участников, который шлюз наполняет из событий.
type State struct {
	mu       sync.RWMutex
	guilds   map[string]*guildState
	channels map[string]Channel
}

type guildState struct {
	id      string
	name    string
	members map[string]User
}

func NewState() *State {
	return &State{
		guilds:   make(map[string]*guildState),
		channels: make(map[string]Channel),
	}
}

func (s *State) guild(id string) *guildState {
	g, ok := s.guilds[id]
	if !ok {
		g = &guildState{id: id, members: make(map[string]User)}
		s.guilds[id] = g
	}
	return g
}

// AddGuild применяет GUILD_CREATE: гильдия целиком, с каналами и (частью) участников.
func (s *State) AddGuild(g Guild) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gs := s.guild(g.ID)
	if g.Name != "" {
		gs.name = g.Name
	}
	for _, m := range g.Members {
		if m.User != nil {
			gs.members[m.User.ID] = *m.User
		}
	}
	for _, ch := range g.Channels {
		ch.GuildID = g.ID
		s.channels[ch.ID] = ch
	}
}

func (s *State) UpdateGuild(g Guild) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gs, ok := s.guilds[g.ID]; ok && g.Name != "" {
		gs.name = g.Name
	}
}

func (s *State) RemoveGuild(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.guilds, id)
	for chID, ch := range s.channels {
		if ch.GuildID == id {
			delete(s.channels, chID)
		}
	}
}

func (s *State) AddMembers(guildID string, members ...Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs := s.guild(guildID)
	for _, m := range members {
		if m.User != nil {
			gs.members[m.User.ID] = *m.User
		}
	}
}

func (s *State) RemoveMember(guildID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gs, ok := s.guilds[guildID]; ok {
		delete(gs.members, userID)
	}
}

func (s *State) MemberCount(guildID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if gs, ok := s.guilds[guildID]; ok {
		return len(gs.members)
	}
	return 0
}

func (s *State) SetChannel(ch Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[ch.ID] = ch
}

func (s *State) RemoveChannel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.channels, id)
}

// ChannelName: имя канала гильдии по id; false, если канал неизвестен.
func (s *State) ChannelName(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ch, ok := s.channels[id]
	return ch.Name, ok
}

// Users возвращает участников всех гильдий. Пользователь из двух гильдий
// встречается дважды. Порядок стабильный: по id гильдии, затем по id участника.
func (s *State) Users() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gids := make([]string, 0, len(s.guilds))
	for id := range s.guilds {
		gids = append(gids, id)
	}
	sort.Strings(gids)

	var out []User
	for _, gid := range gids {
		gs := s.guilds[gid]
		uids := make([]string, 0, len(gs.members))
		for id := range gs.members {
			uids = append(uids, id)
		}
		sort.Strings(uids)
		for _, id := range uids {
			out = append(out, gs.members[id])
		}
	}
	return out
}
