package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"

	"substrates.ai/internal/builds"
	"substrates.ai/internal/persistence/indexdb"
	"substrates.ai/internal/persistence/r2s3"
	"substrates.ai/internal/protocol"
	"substrates.ai/internal/sim/substrate"
	"substrates.ai/internal/transport/ws"
)

// buildMux also returns the websocket server so main can drain its sessions
// before closing the index.
func buildMux(svc *builds.Service, idx indexdb.Index, mirror *r2s3.Mirror, logger *log.Logger, enableAdmin bool) (*http.ServeMux, *ws.Server) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/config", func(rw http.ResponseWriter, r *http.Request) {
		writeJSON(rw, http.StatusOK, svc.Config())
	})
	mux.HandleFunc("/v1/schema", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "application/schema+json")
		_, _ = rw.Write([]byte(protocol.DocumentSchema()))
	})
	mux.HandleFunc("/v1/substrate", func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		roles, err := rolesFromQuery(r, svc.Assembler().MaxPlayers())
		if err != nil {
			code := protocol.ErrBadRequest
			if errors.Is(err, substrate.ErrTooManyPlayers) {
				code = protocol.ErrTooManyPlayers
			}
			writeJSON(rw, statusFor(code), protocol.NewError("", code, err.Error()))
			return
		}
		res, err := svc.Build(r.Context(), "http", roles)
		if err != nil {
			code := protocol.CodeFor(err)
			writeJSON(rw, statusFor(code), protocol.NewError("", code, err.Error()))
			return
		}
		rw.Header().Set("X-Build-Id", res.BuildID)
		rw.Header().Set("ETag", strconv.Quote(res.Digests.Document))
		writeJSON(rw, http.StatusOK, res.Document)
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		st := svc.Stats()

		fmt.Fprintf(rw, "# HELP substrate_builds_total Document builds by result.\n")
		fmt.Fprintf(rw, "# TYPE substrate_builds_total counter\n")
		fmt.Fprintf(rw, "substrate_builds_total{result=%q} %d\n", "ok", st.OK)
		fmt.Fprintf(rw, "substrate_builds_total{result=%q} %d\n", "error", st.Failed)

		fmt.Fprintf(rw, "# HELP substrate_build_players_total Players across successful builds.\n")
		fmt.Fprintf(rw, "# TYPE substrate_build_players_total counter\n")
		fmt.Fprintf(rw, "substrate_build_players_total %d\n", st.Players)

		fmt.Fprintf(rw, "# HELP substrate_build_last_ms Duration of the last build in milliseconds.\n")
		fmt.Fprintf(rw, "# TYPE substrate_build_last_ms gauge\n")
		fmt.Fprintf(rw, "substrate_build_last_ms %.3f\n", st.LastMS)

		fmt.Fprintf(rw, "# HELP substrate_max_players Players one document can hold.\n")
		fmt.Fprintf(rw, "# TYPE substrate_max_players gauge\n")
		fmt.Fprintf(rw, "substrate_max_players %d\n", svc.Assembler().MaxPlayers())

		if mirror != nil {
			ms := mirror.Stats()
			fmt.Fprintf(rw, "# HELP substrate_mirror_files_total Archive files by mirror outcome.\n")
			fmt.Fprintf(rw, "# TYPE substrate_mirror_files_total counter\n")
			fmt.Fprintf(rw, "substrate_mirror_files_total{result=%q} %d\n", "uploaded", ms.Uploaded)
			fmt.Fprintf(rw, "substrate_mirror_files_total{result=%q} %d\n", "failed", ms.Failed)
			fmt.Fprintf(rw, "substrate_mirror_files_total{result=%q} %d\n", "dropped", ms.Dropped)
			fmt.Fprintf(rw, "# HELP substrate_mirror_queue_depth Current mirror queue depth.\n")
			fmt.Fprintf(rw, "# TYPE substrate_mirror_queue_depth gauge\n")
			fmt.Fprintf(rw, "substrate_mirror_queue_depth %d\n", ms.QueueDepth)
		}
	})

	if enableAdmin {
		// Local-only.
		mux.HandleFunc("/admin/v1/builds", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			if idx == nil {
				http.Error(rw, "index disabled", http.StatusServiceUnavailable)
				return
			}
			limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
			recent, err := idx.RecentBuilds(r.Context(), limit)
			if err != nil {
				http.Error(rw, err.Error(), http.StatusInternalServerError)
				return
			}
			writeJSON(rw, http.StatusOK, map[string]any{"builds": recent})
		})
	} else {
		logger.Printf("admin endpoints disabled (SUBSTRATE_ENABLE_ADMIN_HTTP=false)")
	}

	wsSrv := ws.NewServer(svc, log.New(logger.Writer(), "[ws] ", logger.Flags()))
	mux.HandleFunc("/v1/ws", wsSrv.Handler())
	return mux, wsSrv
}

// rolesFromQuery reads `roles=a,b,c` or `players=N` (N default roles, at
// most maxPlayers). With neither, two default roles are used.
func rolesFromQuery(r *http.Request, maxPlayers int) ([]string, error) {
	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("roles")); raw != "" {
		parts := strings.Split(raw, ",")
		roles := make([]string, 0, len(parts))
		for _, p := range parts {
			roles = append(roles, strings.TrimSpace(p))
		}
		return roles, nil
	}
	if raw := strings.TrimSpace(q.Get("players")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("bad players: %q", raw)
		}
		if n > maxPlayers {
			return nil, fmt.Errorf("%w: %d players, at most %d", substrate.ErrTooManyPlayers, n, maxPlayers)
		}
		return builds.DefaultRoles(n), nil
	}
	return builds.DefaultRoles(2), nil
}

func statusFor(code string) int {
	switch code {
	case protocol.ErrNoPlayers, protocol.ErrTooManyPlayers, protocol.ErrUnknownRole, protocol.ErrBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
