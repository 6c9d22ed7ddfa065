package bot

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ozfortress/bookerbot/internal/ssc"
)

const HelpMessage = "```\n" +
	"Discord Server Booker Usage\n" +
	"---------------------------\n" +
	"/book                   - Book a new server\n" +
	"/unbook                 - Return a server\n" +
	"/string                 - Get the string for your active booking\n" +
	"/demos [username]       - Get STV demo link (user optional)\n" +
	"/servers                - List the status of all servers\n" +
	"/help                   - Display this message\n\n" +
	"Commands can be sent in the #bookings channel or via PM to the bot.\n" +
	"Bot written by smeso and /dev/zero.\n" +
	"```"

func codeBlock(s string) string { return "```" + s + "```" }

// DirectLink превращает `connect <ip>; password "<pw>"; ...` в steam://connect/<ip>/<pw>.
func DirectLink(connect string) (string, error) {
	parts := strings.Split(connect, ";")
	if len(parts) < 2 {
		return "", fmt.Errorf("direct link: no password in %q", connect)
	}
	_, ip, ok := strings.Cut(strings.TrimSpace(parts[0]), " ")
	ip = strings.TrimSpace(ip)
	if !ok || ip == "" {
		return "", fmt.Errorf("direct link: no address in %q", connect)
	}
	_, pw, ok := strings.Cut(strings.TrimSpace(parts[1]), " ")
	if !ok {
		return "", fmt.Errorf("direct link: no password in %q", connect)
	}
	pw = strings.TrimSpace(pw)
	if len(pw) >= 2 && pw[0] == '"' && pw[len(pw)-1] == '"' {
		pw = pw[1 : len(pw)-1]
	}
	return "steam://connect/" + ip + "/" + pw, nil
}

type column struct {
	title    string
	minWidth int
	align    lipgloss.Position
}

var serverColumns = []column{
	{title: "NAME", minWidth: 6, align: lipgloss.Center},
	{title: "STATUS", minWidth: 10, align: lipgloss.Left},
	{title: "ADDRESS", align: lipgloss.Left},
	{title: "BOOKER", align: lipgloss.Left},
}

const columnSplitter = " | "

// ServerTable: таблица серверов с выравниванием по ширине в ячейках терминала.
// Пустой BOOKER значит, что сервер свободен.
func ServerTable(servers []ssc.Server) string {
	rows := make([][]string, 0, len(servers)+1)
	head := make([]string, len(serverColumns))
	for i, c := range serverColumns {
		head[i] = c.title
	}
	rows = append(rows, head)
	for _, s := range servers {
		booker := ""
		if s.Booking != nil {
			booker = s.Booking.User
		}
		rows = append(rows, []string{s.Name, s.Status, s.Address, booker})
	}

	widths := make([]int, len(serverColumns))
	for i, c := range serverColumns {
		widths[i] = c.minWidth
	}
	for _, r := range rows {
		for i, cell := range r {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	last := len(serverColumns) - 1
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		cells := make([]string, len(r))
		for i, cell := range r {
			cells[i] = lipgloss.PlaceHorizontal(widths[i], serverColumns[i].align, cell)
		}
		// последнюю колонку не добиваем пробелами, разделитель перед ней остаётся целым
		cells[last] = strings.TrimRight(cells[last], " ")
		lines = append(lines, strings.Join(cells, columnSplitter))
	}
	return strings.Join(lines, "\n")
}
