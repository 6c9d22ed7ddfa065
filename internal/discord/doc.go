// Package discord реализует минимальный клиент Discord: WebSocket-шлюз (v10, JSON)
// и пару вызовов REST API. Клиент умеет:
//
//   - подключаться к шлюзу, отвечать на HELLO, слать IDENTIFY или RESUME;
//   - держать heartbeat и считать соединение подвисшим без ACK;
//   - реконнектиться с экспоненциальным backoff (1s..30s); после фатальных
//     кодов закрытия (4004, 4010-4014): останавливаться;
//   - вести кэш гильдий, каналов и участников (State), дозапрашивая участников
//     больших гильдий (opcode 8);
//   - отправлять сообщения в канал и в личку (SendMessage, SendDirectMessage);
//   - менять активность бота (SetActivity).
//
// События (колбэки поля структуры):
//   - OnConnecting, OnReady, OnMessage, OnDisconnected, OnError.
//
// Пример:
//
//	dc := discord.New(discord.Config{
//	    Token:      token,
//	    GatewayURL: "wss://gateway.discord.gg/?v=10&encoding=json",
//	    APIURL:     "https://discord.com/api/v10",
//	})
//	dc.OnMessage = func(m discord.Message) { go handle(m) }
//	if err := dc.Connect(ctx); err != nil { log.Fatal(err) }
//	defer dc.Disconnect()
package discord
