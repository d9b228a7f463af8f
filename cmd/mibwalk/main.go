// Command mibwalk reads, decodes and polls SNMP agents.
package main

func main() {
	execute()
}
