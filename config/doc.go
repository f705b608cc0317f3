// Package config loads the explicit Config parameter that run_analysis
// requires. It is read once at startup via Load — never consulted again
// mid-run — following the teacher's config-loader discipline of reading a
// YAML file plus .env overrides exactly once before the run begins.
package config
