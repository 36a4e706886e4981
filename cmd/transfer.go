package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zzenonn/dasim/internal/domain"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Run the validator role: accept transfers and reconstruct or sample",
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetInt("port")
		if port == 0 {
			port = cfg.ListenPort
		}

		if err := validatorService.Listen(port); err != nil {
			fmt.Printf("Error running validator: %v\n", err)
		}
	},
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Run the proposer role: push a file to a peer",
	Run: func(cmd *cobra.Command, args []string) {
		peer, _ := cmd.Flags().GetString("peer")
		file, _ := cmd.Flags().GetString("file")
		modeFlag, _ := cmd.Flags().GetString("mode")
		port, _ := cmd.Flags().GetInt("port")

		mode, err := domain.ParseTransferMode(modeFlag)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		// A bare hostname falls back to the port flag.
		if !strings.Contains(peer, ":") {
			peer = fmt.Sprintf("%s:%d", peer, port)
		}

		if err := proposerService.Send(peer, file, mode); err != nil {
			fmt.Printf("Error sending file: %v\n", err)
		}
	},
}

func init() {
	listenCmd.Flags().IntP("port", "p", 0, "Port to listen on (defaults to listen_port config)")

	sendCmd.Flags().IntP("port", "p", 8080, "Peer port when --peer has no port")
	sendCmd.Flags().String("peer", "", "Peer address (host or host:port)")
	sendCmd.Flags().StringP("file", "f", "", "Path of the file to send")
	sendCmd.Flags().StringP("mode", "m", "", "Transfer mode: naive, das-full or das-sample")
	sendCmd.MarkFlagRequired("peer")
	sendCmd.MarkFlagRequired("file")
	sendCmd.MarkFlagRequired("mode")

	rootCmd.AddCommand(listenCmd)
	rootCmd.AddCommand(sendCmd)
}
