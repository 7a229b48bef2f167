package executor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pkg/sftp"

	"github.com/terabiome/kubeboot/internal/api"
)

// Download copies remotePath to localPath over SFTP on the executor's
// existing SSH connection. On any failure the partial local file is
// removed and api.ErrTransferFailed is reported; a cancelled context
// aborts the transfer the same way.
func (e *SSH) Download(ctx context.Context, remotePath, localPath string) error {
	e.logger.Debug("downloading file via SFTP",
		slog.String("remote", remotePath),
		slog.String("local", localPath),
	)

	client, err := sftp.NewClient(e.client)
	if err != nil {
		return fmt.Errorf("%w: failed to open SFTP subsystem: %v", api.ErrTransferFailed, err)
	}
	defer client.Close()

	// Closing the SFTP client unblocks an in-flight read when the
	// context is cancelled.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			client.Close()
		case <-watchDone:
		}
	}()

	src, err := client.Open(remotePath)
	if err != nil {
		return fmt.Errorf("%w: failed to open remote file %s: %v", api.ErrTransferFailed, remotePath, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(localPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("%w: failed to create local file %s: %v", api.ErrTransferFailed, localPath, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(localPath)
		if ctx.Err() != nil {
			return fmt.Errorf("%w: transfer aborted: %v", api.ErrTransferFailed, ctx.Err())
		}
		return fmt.Errorf("%w: failed to copy %s: %v", api.ErrTransferFailed, remotePath, err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(localPath)
		return fmt.Errorf("%w: failed to flush local file %s: %v", api.ErrTransferFailed, localPath, err)
	}

	e.logger.Debug("SFTP download complete", slog.String("remote", remotePath))
	return nil
}
