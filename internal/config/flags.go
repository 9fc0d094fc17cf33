package config

import (
	"flag"
	"os"

	"github.com/avasilkov/giftcal/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-f string   path to the local database file
//	-n string   remote snapshot file name
//	-b string   blob backend, "drive" or "s3"
//	-d string   PostgreSQL DSN for the document-store backend
//	-u string   S3 access key
//	-p string   S3 secret key
//	-k string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-f", "-n", "-b", "-d", "-u", "-p", "-k", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "f", cfg.DatabasePath, "path to local database file")
	fs.StringVar(&cfg.RemoteFileName, "n", cfg.RemoteFileName, "remote snapshot file name")
	fs.StringVar(&cfg.BlobHost, "b", cfg.BlobHost, "blob backend (drive or s3)")
	fs.StringVar(&cfg.DocstoreDSN, "d", cfg.DocstoreDSN, "document store DSN")
	fs.StringVar(&cfg.S3AccessKey, "u", cfg.S3AccessKey, "S3 access key")
	fs.StringVar(&cfg.S3SecretKey, "p", cfg.S3SecretKey, "S3 secret key")
	fs.StringVar(&cfg.S3Bucket, "k", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3Region, "g", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
