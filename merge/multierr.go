package merge

import "github.com/hashicorp/go-multierror"

// multiErr accumulates per-config failures from MergeDirectory so that one
// config's parse or merge error never stops the rest from being processed
// (spec §7 propagation policy), while still giving the caller a single
// error value to inspect via *multierror.Error.
type multiErr struct {
	err *multierror.Error
}

func (m *multiErr) add(err error) *multiErr {
	if m == nil {
		m = &multiErr{}
	}
	m.err = multierror.Append(m.err, err)
	return m
}

func (m *multiErr) errorOrNil() error {
	if m == nil || m.err == nil {
		return nil
	}
	return m.err.ErrorOrNil()
}
