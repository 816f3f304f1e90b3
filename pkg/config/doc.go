/*
Package config loads the YAML experiment configuration.

A config file only overrides what it mentions; everything else keeps
the defaults matching the reference node setup. See Default for the
full set. Validation happens at load time so a bad file fails before
any container is touched.
*/
package config
