// Package namespace registers installed validators in the shared hub import
// tree by appending `from <module> import <names>` statements to the hub
// package's __init__.py files, and loads those files back as modules.
package namespace
