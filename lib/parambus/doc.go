// Package parambus is the receiving end of the parameter command protocol.
//
// A Server accepts TCP connections and reads newline-terminated command
// lines. Each line is split on whitespace; the first token names a module
// registered on the Bus and the full token list is handed to that module:
//
//	argv[0] = module tag, argv[1] = command, argv[2:] = arguments
//
// Carriage returns and empty lines are ignored and nothing is ever written
// back to the client. Table is a Module that stores numeric parameters in
// memory, which lets `paramtune serve` stand in for the robot process.
package parambus
