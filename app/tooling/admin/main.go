// This program performs administrative tasks for the governance service.
package main

import "github.com/trustsphere/trustsphere/app/tooling/admin/cmd"

func main() {
	cmd.Execute()
}
