package save

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"pocketpet/internal/game"
)

var slotFile = regexp.MustCompile(`^save(\d+)\.json$`)

// FileGateway keeps one JSON document per slot in a directory.
type FileGateway struct {
	dir    string
	logger *zap.Logger
}

// NewFileGateway creates dir if needed and returns a gateway over it.
func NewFileGateway(dir string, logger *zap.Logger) (*FileGateway, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating saves directory: %v", ErrStorageUnavailable, err)
	}
	return &FileGateway{dir: dir, logger: logger}, nil
}

// Path returns the file that holds slot.
func (f *FileGateway) Path(slot int) string {
	return filepath.Join(f.dir, fmt.Sprintf("save%d.json", slot))
}

// Save writes the slot through a temp file and rename so a crash never
// leaves a half-written save behind.
func (f *FileGateway) Save(ctx context.Context, g *game.GameState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(g)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, "save*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: writing slot %d: %v", ErrStorageUnavailable, g.SaveSlot, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: syncing slot %d: %v", ErrStorageUnavailable, g.SaveSlot, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := os.Rename(tmpName, f.Path(g.SaveSlot)); err != nil {
		return fmt.Errorf("%w: replacing slot %d: %v", ErrStorageUnavailable, g.SaveSlot, err)
	}

	f.logger.Debug("slot saved", zap.Int("slot", g.SaveSlot), zap.Int("bytes", len(data)))
	return nil
}

// Load reads and decodes slot.
func (f *FileGateway) Load(ctx context.Context, slot int) (*game.GameState, error) {
	if err := checkSlot(slot); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: slot %d", ErrSlotEmpty, slot)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading slot %d: %v", ErrStorageUnavailable, slot, err)
	}
	g, err := Decode(slot, data)
	if err != nil {
		f.logger.Warn("corrupt save slot", zap.Int("slot", slot), zap.Error(err))
		return nil, err
	}
	return g, nil
}

// List summarises every slot file in slot order. Unreadable documents are
// listed with Corrupt set.
func (f *FileGateway) List(ctx context.Context) ([]SlotInfo, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: listing saves: %v", ErrStorageUnavailable, err)
	}

	var out []SlotInfo
	for _, e := range entries {
		m := slotFile.FindStringSubmatch(e.Name())
		if m == nil || e.IsDir() {
			continue
		}
		slot, err := strconv.Atoi(m[1])
		if err != nil || slot < 1 {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		g, err := f.Load(ctx, slot)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			out = append(out, SlotInfo{Slot: slot, UpdatedAt: fi.ModTime(), Corrupt: true})
			continue
		}
		out = append(out, summarize(g, fi.ModTime()))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out, nil
}

// Delete removes slot.
func (f *FileGateway) Delete(ctx context.Context, slot int) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	err := os.Remove(f.Path(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: slot %d", ErrSlotEmpty, slot)
	}
	if err != nil {
		return fmt.Errorf("%w: deleting slot %d: %v", ErrStorageUnavailable, slot, err)
	}
	f.logger.Info("slot deleted", zap.Int("slot", slot))
	return nil
}

func (f *FileGateway) Close() error { return nil }
