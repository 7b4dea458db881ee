// Package config defines the configuration of a PoH node.
//
// Whether the node is started from Go code or from the command line, its
// options are carried by the Config object defined in this package. The node
// also relies on a data directory, defined by Config.DataDir, where it expects
// to find:
//
//  priv_key // a plain text file containing the raw private key (cf. poh keygen).
//  poh.toml // (optional) a configuration file read by the poh command.
//  badger_db // the ledger database, unless Config.DatabaseDir says otherwise.
package config
