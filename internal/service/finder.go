package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/valhub-labs/valhub/internal/loader"
	"github.com/valhub-labs/valhub/internal/pkgmgr"
)

// ModuleFinder locates modules through the Python interpreter.
type ModuleFinder interface {
	ModulePath(ctx context.Context, name string) ([]string, error)
}

// FinderLoader adapts a ModuleFinder into a loader fallback for modules that
// were not installed through the hub, such as pip itself.
func FinderLoader(f ModuleFinder) loader.LoaderFunc {
	return func(ctx context.Context, name string) (*loader.Module, error) {
		path, err := f.ModulePath(ctx, name)
		if err != nil {
			if errors.Is(err, pkgmgr.ErrModuleNotFound) {
				return nil, fmt.Errorf("%w: %s", loader.ErrModuleNotFound, name)
			}
			return nil, err
		}
		return &loader.Module{Name: name, Path: path, Attrs: map[string]any{}}, nil
	}
}
