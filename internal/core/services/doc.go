// Package services contains the core business logic for the AskMe CLI.
// Services implement the driving ports and depend only on driven port
// interfaces, keeping them free of storage and transport concerns.
package services
