// Command reqlexplain prints the caret report a client shows when the server
// rejects a query.
//
// Usage:
//
//	reqlexplain explain 'table("users").filter(gt(row("age"), 5))' --backtrace arg:1,arg:2
//	reqlexplain explain 'table("users").between(1, 5)' --backtrace upperbound --kind RUNTIME_ERROR
//	reqlexplain response 'table("users").get(1)' --response resp.json
//	echo '{"type":"BAD_QUERY","error_message":"Expected a number","backtrace":["arg:1"]}' |
//	    reqlexplain response 'table("users").get("x")'
package main

import (
	"flag"
	"os"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/relux-works/reql-explain/reql/cobraext"
)

func main() {
	klogFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(klogFlags)

	root := &cobra.Command{
		Use:           "reqlexplain",
		Short:         "Explain which part of a query a server error points at",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().AddGoFlagSet(klogFlags)
	cobraext.AddCommands(root)

	if err := root.Execute(); err != nil {
		klog.ErrorS(err, "Command failed")
		klog.Flush()
		os.Exit(1)
	}
	klog.Flush()
}
