// Copyright 2023 The mxquadtree Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/phen0menon/mxquadtree/pkg/errs"
	"github.com/phen0menon/mxquadtree/pkg/utils/configutil"
	"github.com/phen0menon/mxquadtree/pkg/utils/logutil"
	"github.com/phen0menon/mxquadtree/pkg/versioninfo"
	"github.com/phen0menon/mxquadtree/server"
	"github.com/phen0menon/mxquadtree/server/api"
	"github.com/phen0menon/mxquadtree/server/config"
	"github.com/pingcap/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// configEnv names the config file when --config is not given.
const configEnv = "MXQT_CONFIG"

func main() {
	rootCmd := &cobra.Command{
		Use:   "mxqt-server",
		Short: "MX quadtree server",
		Run:   createServerWrapper,
	}

	addFlags(rootCmd)

	rootCmd.SetOutput(os.Stdout)
	if err := rootCmd.Execute(); err != nil {
		rootCmd.Println(err)
		os.Exit(1)
	}
}

func addFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("version", "V", false, "print version information and exit")
	cmd.Flags().StringP("config", "", "", "config file (default '$"+configEnv+"')")
	cmd.Flags().BoolP("config-check", "", false, "check config file validity and exit")
	cmd.Flags().StringP("name", "", "", "human-readable name for this server")
	cmd.Flags().StringP("listen-addr", "", "", "address for HTTP traffic (default '127.0.0.1:2399')")
	cmd.Flags().StringP("metrics-addr", "", "", "prometheus pushgateway address, leaves it empty will disable prometheus push")
	cmd.Flags().StringP("log-level", "L", "info", "log level: debug, info, warn, error, fatal (default 'info')")
	cmd.Flags().StringP("log-file", "", "", "log file path")
	cmd.Flags().IntP("max-depth", "", 0, "depth of terminal leaves (default 3)")
	cmd.Flags().BoolP("enable-redact-log", "", false, "hide coordinates and request parameters in logs")
}

func createServerWrapper(cmd *cobra.Command, args []string) {
	start(cmd, args)
}

func start(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()
	cfg := config.NewConfig()
	flagSet := cmd.Flags()
	flagSet.Parse(args)
	if configFile, _ := flagSet.GetString("config"); configFile == "" {
		if env := os.Getenv(configEnv); env != "" {
			flagSet.Set("config", env)
		}
	}
	err := cfg.Parse(flagSet)
	defer logutil.LogPanic()

	if err != nil {
		cmd.Println(err)
		return
	}

	if printVersion, err := flagSet.GetBool("version"); err != nil {
		cmd.Println(err)
		return
	} else if printVersion {
		versioninfo.Print(os.Stdout)
		exit(0)
	}

	if configCheck, err := flagSet.GetBool("config-check"); err != nil {
		cmd.Println(err)
		return
	} else if configCheck {
		configutil.PrintConfigCheckMsg(os.Stdout, cfg.WarningMsgs)
		exit(0)
	}

	// New zap logger
	err = logutil.SetupLogger(cfg.Log, &cfg.Logger, &cfg.LogProps, cfg.EnableRedactLog)
	if err == nil {
		log.ReplaceGlobals(cfg.Logger, cfg.LogProps)
	} else {
		log.Fatal("initialize logger error", errs.ZapError(err))
	}
	// Flushing any buffered log entries
	defer log.Sync()

	versioninfo.Log("mxqt")

	for _, msg := range cfg.WarningMsgs {
		log.Warn(msg)
	}

	// Creates server.
	ctx, cancel := context.WithCancel(context.Background())
	svr, err := server.CreateServer(ctx, cfg, api.NewHandler)
	if err != nil {
		log.Fatal("create server failed", errs.ZapError(err))
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	var sig os.Signal
	go func() {
		sig = <-sc
		cancel()
	}()

	if err := svr.Run(); err != nil {
		log.Fatal("run server failed", errs.ZapError(err))
	}

	<-ctx.Done()
	log.Info("got signal to exit", zap.String("signal", sig.String()))

	svr.Close()
	switch sig {
	case syscall.SIGTERM:
		exit(0)
	default:
		exit(1)
	}
}

func exit(code int) {
	log.Sync()
	os.Exit(code)
}
