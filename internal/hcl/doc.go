// Package hcl provides the HCL implementation of config.Loader. It parses
// pipeline files, evaluates attribute expressions and converts step params
// from cty values into plain Go values.
package hcl
