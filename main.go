// SPDX-FileCopyrightText: Copyright © 2024-2026 crosspub developers
//
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"github.com/arvikon/crosspub/cmd"
)

func main() {
	cmd.Execute()
}
