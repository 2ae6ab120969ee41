// Copyright (c) 2024 Searchstack, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/searchstack/mlnode/pkg/admin"
	"github.com/searchstack/mlnode/pkg/common/config"
	"github.com/searchstack/mlnode/pkg/common/health"
	"github.com/searchstack/mlnode/pkg/common/leader"
	"github.com/searchstack/mlnode/pkg/common/logging"
	"github.com/searchstack/mlnode/pkg/common/metrics"
	"github.com/searchstack/mlnode/pkg/ml/maintenance"
)

const (
	_electionRole        = "mlmaintenance"
	_metricFlushInterval = 1 * time.Second
)

var (
	version string
	app     = kingpin.New("mlnode", "ML cluster maintenance node")

	debug = app.Flag(
		"debug", "enable debug logging").
		Short('d').
		Default("false").
		Envar("ENABLE_DEBUG_LOGGING").
		Bool()

	configFiles = app.Flag(
		"config",
		"YAML config (can be provided multiple times to merge configs)").
		Short('c').
		Required().
		ExistingFiles()

	electionZKServers = app.Flag(
		"election-zk-server",
		"Election Zookeeper servers. Specify multiple times for multiple "+
			"servers (election.zk_servers override) (set $ELECTION_ZK_SERVERS "+
			"to override)").
		Envar("ELECTION_ZK_SERVERS").
		Strings()

	httpPort = app.Flag(
		"port", "HTTP port for metrics and health (port override)").
		Envar("PORT").
		Int()
)

// appConfig is the merged runtime config of mlnode.
type appConfig struct {
	Port        int                   `yaml:"port"`
	Metrics     metrics.Config        `yaml:"metrics"`
	Election    leader.ElectionConfig `yaml:"election"`
	Admin       admin.Config          `yaml:"admin"`
	Maintenance maintenance.Config    `yaml:"maintenance"`
	Health      health.Config         `yaml:"health"`
}

// nomination bridges the election outcome into the maintenance
// controller's leadership hooks.
type nomination struct {
	id         string
	controller *maintenance.Controller
}

func (n *nomination) GetID() string { return n.id }

func (n *nomination) GainedLeadershipCallback() error {
	n.controller.OnMaster()
	return nil
}

func (n *nomination) LostLeadershipCallback() error {
	n.controller.OffMaster()
	return nil
}

func (n *nomination) ShutDownCallback() error {
	n.controller.OffMaster()
	return nil
}

func main() {
	app.Version(version)
	app.HelpFlag.Short('h')
	kingpin.MustParse(app.Parse(os.Args[1:]))

	log.SetFormatter(&log.JSONFormatter{})
	initialLevel := log.InfoLevel
	if *debug {
		initialLevel = log.DebugLevel
	}
	log.SetLevel(initialLevel)

	var cfg appConfig
	if err := config.Parse(&cfg, *configFiles...); err != nil {
		log.WithError(err).Fatal("Cannot parse config")
	}
	if len(*electionZKServers) > 0 {
		cfg.Election.ZKServers = *electionZKServers
	}
	if *httpPort != 0 {
		cfg.Port = *httpPort
	}

	rootScope, scopeCloser, mux := metrics.InitMetricScope(
		&cfg.Metrics, "mlnode", _metricFlushInterval)
	defer scopeCloser.Close()

	runtimeCollector := metrics.StartCollectingRuntimeMetrics(
		rootScope, cfg.Metrics.Runtime)
	defer runtimeCollector.Close()

	adminClient := admin.NewRESTClient(cfg.Admin)
	maintenanceMetrics := maintenance.NewMetrics(rootScope)

	maintenanceService, err := maintenance.NewService(
		rootScope, maintenanceMetrics, cfg.Maintenance)
	if err != nil {
		log.WithError(err).Fatal("Cannot create maintenance service")
	}

	controller := maintenance.NewController(
		adminClient, maintenanceService, maintenanceMetrics)

	hostname, err := os.Hostname()
	if err != nil {
		log.WithError(err).Fatal("Cannot get hostname")
	}
	candidate, err := leader.NewCandidate(
		cfg.Election,
		rootScope,
		_electionRole,
		&nomination{id: hostname, controller: controller},
	)
	if err != nil {
		log.WithError(err).Fatal("Cannot create election candidate")
	}
	if err := candidate.Start(); err != nil {
		log.WithError(err).Fatal("Cannot start election candidate")
	}

	heartbeat := health.New(rootScope, cfg.Health, candidate)
	heartbeat.Start()

	mux.HandleFunc(
		logging.LevelOverwrite, logging.LevelOverwriteHandler(initialLevel))

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		log.WithField("addr", addr).Info("Serving metrics and health.")
		if err := nethttp.ListenAndServe(addr, mux); err != nil {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	log.WithField("version", version).Info("mlnode started.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.WithField("signal", sig.String()).Info("Shutting down.")

	heartbeat.Stop()
	if err := candidate.Stop(); err != nil {
		log.WithError(err).Error("Error stopping election candidate")
	}
}
