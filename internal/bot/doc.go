// Package bot содержит прикладную часть BookerBot, разбор чат-команд Discord и их
// выполнение через API бронирования серверов (ssc). Бот:
//   - слушает личку и разрешённые каналы гильдий;
//   - понимает !book, !unbook (!return, !reset), !string, !servers (!status),
//     !demos [кто] (!demo) и !help, префикс может быть и "/";
//   - в статусе показывает, сколько серверов свободно.
//
// Жизненный цикл:
//   - Создать бота через New(api, chat, matcher, demos, opts).
//   - Подписать на события шлюза: Attach(discordClient).
//   - Start(ctx) перед Connect; поллер статуса стартует по первому READY.
//   - Stop() гасит поллер и дожидается обработчиков.
//
// Пример:
//
//	b := bot.New(sscClient, dc, members.NewMatcher(dc, members.DefaultMargin), links, bot.Options{
//		Channels:     []string{"bookings"},
//		BookingHours: 3,
//		PollInterval: time.Minute,
//	})
//	b.Attach(dc)
//	_ = b.Start(ctx)
//	defer b.Stop()
//	_ = dc.Connect(ctx)
package bot
