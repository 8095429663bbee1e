package clix

import (
	"github.com/spf13/pflag"
)

type PaginationParams struct {
	Limit  int
	Offset int
}

func ParsePagination(flags *pflag.FlagSet) (PaginationParams, error) {
	limit, _ := flags.GetInt("limit")
	offset, _ := flags.GetInt("offset")
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return PaginationParams{Limit: limit, Offset: offset}, nil
}

// AddPaginationFlags registers the --limit and --offset flags ParsePagination reads.
func AddPaginationFlags(flags *pflag.FlagSet) {
	flags.Int("limit", 20, "Maximum number of rows")
	flags.Int("offset", 0, "Number of rows to skip")
}
