// Package conversation holds the client-side memory of a chat session.
//
// Hosted chat-completion APIs are stateless: every call only sees what it is sent.
// Store keeps the ordered turn log of one session and resends all of it on every
// exchange. It is owned by a single session and is not safe for concurrent use;
// callers that share a Store across goroutines must serialize exchanges.
package conversation
