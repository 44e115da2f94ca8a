package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/rorupuntou/World-IDle-sub000/internal/ops"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: ops <command> [flags]

commands:
  backup   archive the data directory to a tar.gz
  restore  unpack an archive into a data directory
`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "backup":
		fs := flag.NewFlagSet("backup", flag.ExitOnError)
		dataDir := fs.String("data", "data", "data directory to archive")
		out := fs.String("out", "", "archive path (default backups/world-idle-<ts>.tar.gz)")
		_ = fs.Parse(os.Args[2:])
		if *out == "" {
			ts := time.Now().UTC().Format("20060102-150405")
			*out = filepath.Join("backups", "world-idle-"+ts+".tar.gz")
		}
		if err := ops.BackupDataDir(*dataDir, *out); err != nil {
			log.Fatalf("backup: %v", err)
		}
		fmt.Println(*out)
	case "restore":
		fs := flag.NewFlagSet("restore", flag.ExitOnError)
		archive := fs.String("archive", "", "archive to restore (required)")
		dataDir := fs.String("data", "data", "target data directory")
		_ = fs.Parse(os.Args[2:])
		if *archive == "" {
			usage()
		}
		if err := ops.RestoreDataDir(*archive, *dataDir); err != nil {
			log.Fatalf("restore: %v", err)
		}
	default:
		usage()
	}
}
