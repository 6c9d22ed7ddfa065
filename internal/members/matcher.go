// Package members ищет участников Discord по неточному имени.
package members

import (
	"sort"

	"github.com/ozfortress/bookerbot/internal/discord"
)

// DefaultMargin: порог похожести; совпадением считается score строго больше.
const DefaultMargin = 0.7

// Source отдаёт всех участников всех видимых гильдий (discord.State, discord.Client).
type Source interface {
	Users() []discord.User
}

type Match struct {
	User  discord.User
	Score float64
}

type Matcher struct {
	src    Source
	margin float64
}

func NewMatcher(src Source, margin float64) *Matcher {
	return &Matcher{src: src, margin: margin}
}

// Matches: все участники, у которых max(sim(username), sim(fullname)) > margin,
// по возрастанию score (самое слабое совпадение первым, при равенстве: порядок Source).
func (m *Matcher) Matches(query string) []Match {
	var out []Match
	for _, u := range m.src.Users() {
		score := max(Similarity(query, u.Username), Similarity(query, u.Fullname()))
		if score > m.margin {
			out = append(out, Match{User: u, Score: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	return out
}

// Find: то же, что Matches, но только пользователи.
func (m *Matcher) Find(query string) []discord.User {
	matches := m.Matches(query)
	users := make([]discord.User, 0, len(matches))
	for _, mt := range matches {
		users = append(users, mt.User)
	}
	return users
}
