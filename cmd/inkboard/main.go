// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command inkboard exercises the cross-loop visual host.
package main

func main() {
	Execute()
}
