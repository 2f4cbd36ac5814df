// Package chat implements a streaming chat engine that acts as the producer
// side of a chat store.
//
// A Chat owns one conversation. Its actions (SendMessage, Regenerate, Stop,
// ResumeStream, AddToolResult, SetMessages, ClearError) drive a model.Model
// and publish a fresh core.ChatState after every transition:
//
//	ready -> submitted -> streaming -> ready
//	                   \-> error
//
// Tools registered in Options.Tools are executed inline between model round
// trips; calls to unknown tools are left pending for the client, which
// answers them through AddToolResult.
//
// A Chat satisfies bridge.Producer, so its snapshots can be mirrored into a
// store:
//
//	c := chat.New(m)
//	detach := chatstore.UseChat(c)
//	defer detach()
package chat
