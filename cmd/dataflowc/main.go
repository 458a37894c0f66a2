// Command dataflowc is a development harness for driving the dataflow
// compiler's pass pipeline against a fixture design: not a production
// front-end, and not a GraphML importer (that stays an external
// collaborator).
package main

import "github.com/ucb-cyarp/dataflowc/cmd/dataflowc/cmd"

func main() {
	cmd.Execute()
}
