// Package session is the decision core of the modal layer. A Session
// owns the modal state of one editor: the mode controller, the key
// buffer, the in-flight search or capture, and the sentence history
// used by repeat commands.
//
// Key events enter through HandleKey and are processed to completion,
// including any nested resolution a command triggers, before the next
// event is accepted. The host guarantees serialized delivery, so the
// session holds no locks of its own; the shared mode controller and
// macro recorder guard themselves.
package session
