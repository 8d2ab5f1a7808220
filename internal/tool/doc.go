// Package tool defines the tool interface and the interrupt protocol.
//
// A tool that needs human confirmation before acting returns *InterruptError
// carrying the payload to show the user. On resume the human reply is
// attached to the context with WithResumeValue and the same tool is invoked
// again, this time completing (or declining) based on the reply.
package tool
