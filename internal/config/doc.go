// Package config manages user-level settings stored at ~/.valhub/config.yaml.
// It provides functions to load, read, and write configuration keys such as
// the hub token, the remote-inference preference, and the Python interpreter
// used to drive pip.
package config
