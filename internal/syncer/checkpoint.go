package syncer

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/hiveio/hive-indexer/internal/adapter"
	"github.com/hiveio/hive-indexer/internal/model"
)

const checkpointSuffix = ".json.lst"

type checkpointFile struct {
	path string
	end  uint32
}

// replayCheckpoints enumerates checkpoints/*.json.lst, parses each
// filename's leading integer as the block number reached at the end of
// that file, and replays every file not already covered by db_last_block
// (spec.md §4.F step 2, §6 "Checkpoint file format"). A missing or absent
// checkpoint directory is not an error — range backfill covers the rest.
func (s *Syncer) replayCheckpoints(ctx context.Context) error {
	if s.cfg.CheckpointDir == "" {
		return nil
	}
	files, err := listCheckpointFiles(s.cfg.CheckpointDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(files) == 0 {
		return nil
	}

	last, err := s.store.DBLastBlock(ctx)
	if err != nil {
		return err
	}

	var prevEnd uint32
	appliedStraddle := false
	for _, f := range files {
		if f.end <= last {
			prevEnd = f.end
			continue
		}
		skip := 0
		if !appliedStraddle {
			skip = int(last - prevEnd)
			appliedStraddle = true
		}
		if err := s.applyCheckpointFile(ctx, f.path, skip); err != nil {
			return err
		}
		prevEnd = f.end
	}
	return nil
}

func listCheckpointFiles(dir string) ([]checkpointFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []checkpointFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, checkpointSuffix) {
			continue
		}
		numStr := strings.TrimSuffix(name, checkpointSuffix)
		n, err := strconv.ParseUint(numStr, 10, 32)
		if err != nil {
			continue
		}
		files = append(files, checkpointFile{path: filepath.Join(dir, name), end: uint32(n)})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].end < files[j].end })
	return files, nil
}

// applyCheckpointFile replays one file, skipping its first skip lines, then
// applying the remainder in transactions of at most ChunkSize blocks each
// (spec.md §4.F step 2).
func (s *Syncer) applyCheckpointFile(ctx context.Context, path string, skip int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	lineNum := 0
	chunk := make([]*model.Block, 0, s.cfg.ChunkSize)

	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		dirty, err := s.projector.ProcessBatch(ctx, chunk)
		if err != nil {
			return err
		}
		s.dirty.Merge(dirty)
		s.recordBlocksProcessed(len(chunk))
		s.recordDirtySetSize(s.dirty.Len())
		s.recordCheckpointChunk()
		chunk = chunk[:0]
		return nil
	}

	for scanner.Scan() {
		lineNum++
		if lineNum <= skip {
			continue
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !gjson.Valid(line) {
			continue
		}
		chunk = append(chunk, adapter.DecodeBlock(gjson.Parse(line)))
		if len(chunk) >= s.cfg.ChunkSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}
	return scanner.Err()
}
