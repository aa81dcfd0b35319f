// SPDX-License-Identifier: MPL-2.0

package main

import cmd "devs-cli/cmd/devs"

func main() {
	cmd.Execute()
}
