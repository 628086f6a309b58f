// Package cli implements the foldershare command-line client.
//
// Commands:
//
//	share <name> <worlds.json>   publish a folder and print its share id
//	fetch <id>                   print a shared folder as JSON
//	import <id>                  save a shared folder into the local database
//	list                         list imported folders
//
// The HMAC secret comes from configuration; if it is empty the user is
// prompted for it on the terminal.
package cli
