package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Roy2player/MSAPI-sub000/internal/admin"
	"github.com/Roy2player/MSAPI-sub000/internal/app"
	"github.com/Roy2player/MSAPI-sub000/internal/config"
	"github.com/Roy2player/MSAPI-sub000/internal/logging"
	"github.com/Roy2player/MSAPI-sub000/internal/metrics"
	"github.com/Roy2player/MSAPI-sub000/internal/netutil"
	"github.com/Roy2player/MSAPI-sub000/internal/server"
)

func newServeCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start an application and its server core",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetString("config"))
			if err != nil {
				return err
			}
			if lvl := viper.GetString("log-level"); lvl != "" {
				cfg.Logging.Level = lvl
			}

			log := logging.New(cfg.Logging.Level)

			a := app.New(name, nil, log)
			met := metrics.New()
			srv := server.New(a, log, met, server.Config{
				ReconnectSeconds:      cfg.Server.ReconnectSeconds,
				ReconnectAttemptLimit: cfg.Server.ReconnectAttemptLimit,
				MaxConnectionsPerIP:   cfg.Server.MaxConnectionsPerIP,
				RecvBufferSize:        cfg.Server.RecvBufferSize,
				RecvBufferSizeLimit:   cfg.Server.RecvBufferSizeLimit,
				MaxConnections:        cfg.Server.MaxConnections,
			})
			a.SetShutdownRequester(srv)

			if cfg.Admin.Enabled {
				adminSrv := admin.New(a, met, log)
				go func() {
					log.WithField("addr", cfg.Admin.ListenAddr).Info("admin surface listening")
					if err := admin.ListenAndServe(cfg.Admin.ListenAddr, adminSrv); err != nil {
						log.WithError(err).Error("admin surface exited")
					}
				}()
			}

			log.WithField("addr", netutil.JoinHostPort(cfg.Server.ListenIP, cfg.Server.ListenPort)).
				Info("starting server")
			return srv.Start(cfg.Server.ListenIP, cfg.Server.ListenPort)
		},
	}
	cmd.Flags().StringVar(&name, "name", "msapi-app", "application name, exposed as parameter 2000001")
	return cmd
}
