// Command pypm infers a Python project's third-party PyPI dependencies
// from its imports.
package main

import "github.com/nullpx/pypm/cmd"

func main() {
	cmd.Execute()
}
