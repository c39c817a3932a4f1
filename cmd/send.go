package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jmehdipour/workflow-relay/internal/config"
	"github.com/jmehdipour/workflow-relay/internal/logger"
	"github.com/jmehdipour/workflow-relay/internal/model"
	"github.com/jmehdipour/workflow-relay/internal/relay"
	"github.com/spf13/cobra"
)

var (
	sendFile    string
	sendEnv     string
	sendPath    string
	sendRetries int
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Relay one JSON message ({template,to,from,context}) and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		log := logger.Init(cfg.Log.Level)
		defer func() { _ = log.Sync() }()

		var in io.Reader = cmd.InOrStdin()
		if sendFile != "" && sendFile != "-" {
			f, err := os.Open(sendFile)
			if err != nil {
				return fmt.Errorf("open %s: %w", sendFile, err)
			}
			defer f.Close()
			in = f
		}

		var msg model.OutboundMessage
		dec := json.NewDecoder(in)
		dec.UseNumber()
		if err := dec.Decode(&msg); err != nil {
			return fmt.Errorf("decode message: %w", err)
		}

		opts := []relay.CallOption{relay.WithEnvironment(sendEnv)}
		if cmd.Flags().Changed("retries") {
			opts = append(opts, relay.WithRetries(sendRetries))
		}

		res := newRelayClient(cfg, log).Relay(cmd.Context(), sendPath, msg, opts...)
		return printResult(cmd.OutOrStdout(), res)
	},
}

func init() {
	sendCmd.Flags().StringVarP(&sendFile, "file", "f", "-", "message JSON file (- for stdin)")
	sendCmd.Flags().StringVar(&sendEnv, "env", "", "environment override (staging, production, ...)")
	sendCmd.Flags().StringVar(&sendPath, "path", "send-mail", "path appended to the environment route")
	sendCmd.Flags().IntVar(&sendRetries, "retries", relay.DefaultRetries, "extra attempts on retryable failures")
}

func printResult(w io.Writer, res model.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if !res.OK() {
		return fmt.Errorf("relay failed: %s", res.Error)
	}
	return nil
}
