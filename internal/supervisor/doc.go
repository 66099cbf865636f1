// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package supervisor runs Marquee's long-lived services under a suture v4 tree.

	RootSupervisor ("marquee")
	├── StorageSupervisor ("storage-layer")
	│   ├── StoreGCService (when POSTER_STORE_PATH is set)
	│   └── WatchService "config-watcher" (when a config file is loaded)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with backoff. A failing GC or watcher never
takes the HTTP server down with it. Supervisor events are logged through
sutureslog into the zerolog pipeline:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	err = tree.Serve(ctx)
*/
package supervisor
