// SPDX-License-Identifier: MPL-2.0

package main

import "zipbundler/cmd/zipbundler"

func main() {
	cmd.Execute()
}
