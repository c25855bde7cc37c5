// Command cmdnet-client sends one command to a cmdnet-server and prints
// its reply. It is not the interactive REPL; it is a thin, scriptable
// front end to the client core.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lud4ik/cmdnet/cmdclient"
	"github.com/lud4ik/cmdnet/config"
	"github.com/lud4ik/cmdnet/logger"
)

func main() {
	var send, data string

	root := &cobra.Command{
		Use:   "cmdnet-client",
		Short: "Send one command to a cmdnet-server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, send, data)
		},
	}
	config.BindFlags(root)
	root.Flags().StringVar(&send, "send", "ping", "command to send: connect, ping, pingd, delay, quit, finish")
	root.Flags().StringVar(&data, "data", "", "data payload for pingd/delay")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, send, data string) error {
	cfg := config.Load(cmd)

	log := logger.New()
	log.SetLevel(logger.GetLevelString(cfg.LogLevel))

	c, err := cmdclient.Dial(cfg.Addr(), log)
	if err != nil {
		return err
	}
	defer c.Close()

	pkt, err := cmdclient.BuildCommand(send, data)
	if err != nil {
		return err
	}
	if err := c.Send(pkt); err != nil {
		return err
	}

	reply, err := c.Receive()
	if err != nil {
		return err
	}

	fmt.Println(cmdclient.Describe(reply))
	return nil
}
