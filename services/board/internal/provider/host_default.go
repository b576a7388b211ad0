//go:build !rp2040

package provider

func platformBackend() Backend { return NewHost() }
