// Package metadata parses and builds the zarr.json documents exchanged
// with a Store, translates Zarr v2 documents (.zgroup/.zarray/.zattrs and
// .zmetadata consolidated manifests) into their v3 equivalents for
// read-only compatibility, and implements the ArrayMetadataBuilder state
// machine arrays are constructed through.
package metadata
