package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ozfortress/bookerbot/internal/demos"
	"github.com/ozfortress/bookerbot/internal/discord"
	"github.com/ozfortress/bookerbot/internal/ssc"
)

const (
	MsgSoldOut      = "There are no available servers left to book"
	MsgNotBooked    = "You have not booked a server."
	MsgUnbooked     = "You have successfully unbooked the server."
	MsgGenericError = "Something went wrong, please notify your local administrator to check the logs."
)

var errNoServer = errors.New("booking response without server")

// book (!book) бронирует сервер на BookingHours часов. 409 значит, что бронь
// уже есть, тогда один раз запрашиваем её и показываем.
func (b *BookerBot) book(ctx context.Context, req *request) {
	user := req.msg.Author.Fullname()
	booking, err := b.api.CreateBooking(ctx, user, b.hours)
	switch {
	case err == nil:
	case ssc.IsConflict(err):
		b.alreadyBooked(ctx, req, user)
		return
	case ssc.IsNoServerAvailable(err):
		b.dm(ctx, req, MsgSoldOut)
		return
	default:
		b.fail(ctx, req, b.dm, err)
		return
	}
	if booking == nil || booking.Server == nil {
		b.fail(ctx, req, b.dm, errNoServer)
		return
	}

	s := booking.Server
	lines := []string{
		fmt.Sprintf("Your booking for Server **%s** lasts **%d hours**:", s.Name, b.hours),
		codeBlock(s.ConnectString),
	}
	if link, err := DirectLink(s.ConnectString); err == nil {
		lines = append(lines, "Direct connect: "+link)
	} else {
		req.log.WithError(err).Warn("no direct connect link")
	}
	lines = append(lines, fmt.Sprintf("Visit %s for your recorded demos", b.links.URL(user)))

	req.log.WithField("server", s.Name).Info("server booked")
	b.dm(ctx, req, strings.Join(lines, "\n"))
}

func (b *BookerBot) alreadyBooked(ctx context.Context, req *request, user string) {
	booking, err := b.api.GetBooking(ctx, user)
	if err == nil && (booking == nil || booking.Server == nil) {
		err = errNoServer
	}
	if err != nil {
		b.fail(ctx, req, b.dm, err)
		return
	}
	s := booking.Server
	b.dm(ctx, req, fmt.Sprintf("You have already booked Server **%s** for **%d hours**:\n%s",
		s.Name, b.hours, codeBlock(s.ConnectString)))
}

// unbook: !unbook, !return, !reset.
func (b *BookerBot) unbook(ctx context.Context, req *request) {
	err := b.api.DeleteBooking(ctx, req.msg.Author.Fullname())
	switch {
	case err == nil:
		req.log.Info("server unbooked")
		b.dm(ctx, req, MsgUnbooked)
	case ssc.IsNotFound(err):
		b.dm(ctx, req, MsgNotBooked)
	default:
		b.fail(ctx, req, b.dm, err)
	}
}

// connectString (!string) повторно присылает connect-строку своей брони.
func (b *BookerBot) connectString(ctx context.Context, req *request) {
	booking, err := b.api.GetBooking(ctx, req.msg.Author.Fullname())
	if err == nil && (booking == nil || booking.Server == nil) {
		err = errNoServer
	}
	switch {
	case err == nil:
		s := booking.Server
		b.dm(ctx, req, fmt.Sprintf("You have booked Server **%s**:\n%s", s.Name, codeBlock(s.ConnectString)))
	case ssc.IsNotFound(err):
		b.dm(ctx, req, MsgNotBooked)
	default:
		b.fail(ctx, req, b.dm, err)
	}
}

// servers (!servers, !status) шлёт в канал таблицу всех серверов.
func (b *BookerBot) servers(ctx context.Context, req *request) {
	list, err := b.api.ListServers(ctx)
	if err != nil {
		b.fail(ctx, req, b.say, err)
		return
	}
	b.say(ctx, req, codeBlock(ServerTable(list.Servers)))
}

// demos (!demos [кто]) присылает ссылки на демки всех похожих участников.
// Без аргумента ищем самого автора. Цель может оказаться куском уже выданной
// ссылки (base32 от fullname), поэтому ищем ещё и по раскодированному имени.
func (b *BookerBot) demos(ctx context.Context, req *request) {
	target := req.msg.Author.Fullname()
	if len(req.args) > 0 {
		target = req.args[0]
	}

	users := b.matcher.Find(target)
	var decodedUsers []discord.User
	decoded, err := demos.Decode(target)
	if err == nil {
		decodedUsers = b.matcher.Find(decoded)
	}
	users = append(users, decodedUsers...)

	result := make([]string, 0, len(users))
	for _, u := range users {
		result = append(result, fmt.Sprintf("- **@%s** : %s", u.Fullname(), b.links.URL(u.Fullname())))
	}

	name := "'" + target + "'"
	if len(decodedUsers) > 0 {
		name += " (" + decoded + ")"
	}
	b.dm(ctx, req, fmt.Sprintf("Found *%d* users for **%s**:\n\n%s", len(users), name, strings.Join(result, "\n")))
}

func (b *BookerBot) help(ctx context.Context, req *request) {
	b.say(ctx, req, HelpMessage)
}
