package entity

// RemoteSession is one provisioned browser endpoint.
type RemoteSession struct {
	ID         string
	ConnectURL string
}

type Screenshot struct {
	Data   []byte
	Format string
	Width  int
	Height int
}
