package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"substrates.ai/internal/builds"
	"substrates.ai/internal/persistence/archive"
	"substrates.ai/internal/persistence/indexdb"
	persistlog "substrates.ai/internal/persistence/log"
	"substrates.ai/internal/persistence/snapshot"
	"substrates.ai/internal/protocol"
	"substrates.ai/internal/sim/catalogs"
	"substrates.ai/internal/sim/palette"
	"substrates.ai/internal/sim/substrate"
	"substrates.ai/internal/sim/tuning"
)

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "build":
		err = buildCmd(os.Args[2:], os.Stdout)
	case "validate":
		err = validateCmd(os.Args[2:], os.Stdout)
	case "show":
		err = showCmd(os.Args[2:], os.Stdout)
	case "config":
		err = configCmd(os.Args[2:], os.Stdout)
	case "list":
		err = listCmd(os.Args[2:], os.Stdout)
	case "builds":
		err = buildsCmd(os.Args[2:], os.Stdout)
	case "fetch":
		err = fetchCmd(os.Args[2:], os.Stdout)
	case "-h", "--help", "help":
		usage(os.Stdout)
		return
	default:
		usage(os.Stderr)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "substrate:", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `usage: substrate <command> [flags]

commands:
  build     assemble a document (-players N | -roles a,b) and print or archive it
  validate  check a document file (.json or archived .zst) against the schema
  show      summarize a document file
  config    print the RL-facing config
  list      list archived documents
  builds    list recent builds from the index
  fetch     request a document from a running server over websocket`)
}

func parseRoles(roles string, players int) []string {
	if strings.TrimSpace(roles) != "" {
		parts := strings.Split(roles, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return builds.DefaultRoles(players)
}

func buildCmd(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	players := fs.Int("players", 2, "number of players (default roles)")
	roles := fs.String("roles", "", "comma separated roles (overrides -players)")
	settingsPath := fs.String("settings", "", "settings.yaml path (optional)")
	out := fs.String("out", "", "write document JSON here instead of stdout")
	archiveDir := fs.String("archive", "", "also archive the document under this directory")
	dataDir := fs.String("data", "", "data directory for the build log and index (optional)")
	strict := fs.Bool("strict_roles", false, "reject roles outside valid_roles")
	pretty := fs.Bool("pretty", true, "indent JSON")
	_ = fs.Parse(args)

	settings, err := tuning.Load(*settingsPath)
	if err != nil {
		return err
	}
	asm, err := substrate.NewAssembler(settings, palette.HumanReadable())
	if err != nil {
		return err
	}
	opts := builds.Options{
		Assembler:   asm,
		ArchiveDir:  *archiveDir,
		StrictRoles: *strict,
		Logger:      log.New(os.Stderr, "[substrate] ", log.LstdFlags),
	}
	if *dataDir != "" {
		idx, err := indexdb.Open(os.Getenv("SUBSTRATE_INDEX_BACKEND"), os.Getenv("SUBSTRATE_INDEX_DSN"), *dataDir)
		if err != nil {
			return err
		}
		if idx != nil {
			defer idx.Close()
			opts.Index = idx
		}
		blog := persistlog.NewBuildLogger(*dataDir)
		defer blog.Close()
		opts.BuildLog = blog
	}
	svc, err := builds.New(opts)
	if err != nil {
		return err
	}

	res, err := svc.Build(context.Background(), "cli", parseRoles(*roles, *players))
	if err != nil {
		return err
	}
	b, err := encodeDocument(res.Document, *pretty)
	if err != nil {
		return err
	}
	if *out == "" {
		_, err = stdout.Write(b)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(*out, b, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s (%s) build=%s digest=%.12s\n", *out, humanize.Bytes(uint64(len(b))), res.BuildID, res.Digests.Document)
	if res.ArchivePath != "" {
		fmt.Fprintf(stdout, "archived %s\n", res.ArchivePath)
	}
	return nil
}

func encodeDocument(doc substrate.Document, pretty bool) ([]byte, error) {
	var (
		b   []byte
		err error
	)
	if pretty {
		b, err = json.MarshalIndent(doc, "", "  ")
	} else {
		b, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// readDocument loads plain JSON or an archived .zst document.
func readDocument(path string) (substrate.Document, []byte, error) {
	if strings.HasSuffix(path, ".zst") {
		_, doc, err := snapshot.ReadDocument(path)
		if err != nil {
			return substrate.Document{}, nil, err
		}
		b, err := json.Marshal(doc)
		return doc, b, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return substrate.Document{}, nil, err
	}
	var doc substrate.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return substrate.Document{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, b, nil
}

func validateCmd(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() == 0 {
		return fmt.Errorf("validate: missing document path")
	}
	for _, p := range fs.Args() {
		doc, raw, err := readDocument(p)
		if err != nil {
			return err
		}
		if err := protocol.ValidateDocumentJSON(raw); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		if err := substrate.CheckDocument(doc); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		fmt.Fprintf(stdout, "%s: ok (%d players)\n", p, doc.NumPlayers)
	}
	return nil
}

func showCmd(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("show: want one document path")
	}
	doc, raw, err := readDocument(fs.Arg(0))
	if err != nil {
		return err
	}
	d, err := catalogs.Digest(doc)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "level:      %s (%s)\n", doc.LevelName, doc.LevelDirectory)
	fmt.Fprintf(stdout, "players:    %d\n", doc.NumPlayers)
	fmt.Fprintf(stdout, "episode:    %d frames, sprite size %d, %s\n", doc.MaxEpisodeLengthFrames, doc.SpriteSize, doc.Topology)
	fmt.Fprintf(stdout, "prefabs:    %s\n", strings.Join(d.PrefabNames, ", "))
	fmt.Fprintf(stdout, "json size:  %s\n", humanize.Bytes(uint64(len(raw))))
	fmt.Fprintf(stdout, "digest:     %s\n", d.Document)
	fmt.Fprintln(stdout, "map:")
	fmt.Fprintln(stdout, strings.Trim(doc.Simulation.Map, "\n"))
	return nil
}

func configCmd(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	settingsPath := fs.String("settings", "", "settings.yaml path (optional)")
	_ = fs.Parse(args)
	settings, err := tuning.Load(*settingsPath)
	if err != nil {
		return err
	}
	asm, err := substrate.NewAssembler(settings, palette.HumanReadable())
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(asm.Config(), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(b))
	return err
}

func listCmd(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	dir := fs.String("archive", "./data/archive", "archive directory")
	level := fs.String("level", tuning.Defaults().LevelName, "level name")
	_ = fs.Parse(args)

	paths, err := archive.List(*dir, *level)
	if err != nil {
		return err
	}
	for _, p := range paths {
		h, err := snapshot.ReadHeader(p)
		if err != nil {
			fmt.Fprintf(stdout, "%s: %v\n", filepath.Base(p), err)
			continue
		}
		size := ""
		if st, err := os.Stat(p); err == nil {
			size = humanize.Bytes(uint64(st.Size()))
		}
		age := h.CreatedAt
		if t, err := time.Parse(time.RFC3339Nano, h.CreatedAt); err == nil {
			age = humanize.Time(t)
		}
		fmt.Fprintf(stdout, "%s\tplayers=%d\t%s\t%s\t%.12s\n", h.BuildID, h.NumPlayers, size, age, h.Digest)
	}
	return nil
}

func buildsCmd(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("builds", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "data directory")
	limit := fs.Int("limit", 20, "result limit")
	_ = fs.Parse(args)

	idx, err := indexdb.Open(os.Getenv("SUBSTRATE_INDEX_BACKEND"), os.Getenv("SUBSTRATE_INDEX_DSN"), *dataDir)
	if err != nil {
		return err
	}
	if idx == nil {
		return fmt.Errorf("index disabled")
	}
	defer idx.Close()
	recent, err := idx.RecentBuilds(context.Background(), *limit)
	if err != nil {
		return err
	}
	for _, r := range recent {
		age := r.CreatedAt
		if t, err := time.Parse(time.RFC3339Nano, r.CreatedAt); err == nil {
			age = humanize.Time(t)
		}
		fmt.Fprintf(stdout, "%s\t%s\tplayers=%d\t%s\t%s\t%.12s\n", r.BuildID, r.Source, r.NumPlayers, age, r.ArchivePath, r.Digest)
	}
	return nil
}
