package commands

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/danejoe001/transfer/pkg/transfer"
	"github.com/spf13/cobra"
)

var (
	downloadAddr    string
	downloadOut     string
	downloadTaskID  int64
	downloadTimeout time.Duration
)

var downloadCmd = &cobra.Command{
	Use:   "download <file-id>",
	Short: "Download a file from the reactor",
	Long: `Fetch a file's entire contents over the wire protocol: a
DownloadRequest naming (file_id, task_id) to learn its size and md5
checksum, then bounded concurrent BlockRequests, reassembled in file
order and verified against the checksum.

Examples:
  # Download file_id 42 to ./report.csv
  danejoe-client download 42 -o report.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVar(&downloadAddr, "addr", "localhost:7700", "Reactor listen address")
	downloadCmd.Flags().StringVarP(&downloadOut, "output-file", "o", "", "Destination file path (default: <file-id>)")
	downloadCmd.Flags().Int64Var(&downloadTaskID, "task-id", 1, "Task ID to tag this download's requests with")
	downloadCmd.Flags().DurationVar(&downloadTimeout, "timeout", 5*time.Minute, "Download timeout")
}

func runDownload(cmd *cobra.Command, args []string) error {
	fileID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid file-id %q: %w", args[0], err)
	}

	dest := downloadOut
	if dest == "" {
		dest = args[0]
	}

	conn, err := net.DialTimeout("tcp", downloadAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("dial %s: %w", downloadAddr, err)
	}
	defer conn.Close()

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer f.Close()

	transport := transfer.NewTransport(conn, 0)
	manager := transfer.New(transport, transfer.Config{})

	ctx, cancel := context.WithTimeout(context.Background(), downloadTimeout)
	defer cancel()

	progress, err := manager.Download(ctx, fileID, downloadTaskID, f, transfer.DownloadOptions{
		OnProgress: func(p transfer.Progress) {
			fmt.Printf("\r%d/%d bytes (%d/%d blocks)", p.BytesDownloaded, p.FileSize, p.BlocksDone, p.BlocksTotal)
		},
	})
	fmt.Println()
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}

	fmt.Printf("Downloaded file_id %d (%d bytes) to %s\n", fileID, progress.FileSize, dest)
	return nil
}
