package db

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"

	"liyu1981.xyz/energy-opdb-service/pkg/common"
)

// Options describes how to reach the storage engine and which capabilities
// the deployment offers.
type Options struct {
	URI              string
	Hostname         string
	Port             int
	Username         string
	Password         string
	Database         string
	TLS              bool
	TLSCAFile        string
	ReplicaSet       string
	DirectConnection bool

	// CABucket and CAKey locate the TLS CA bundle in S3. When both are set
	// the bundle is downloaded to TLSCAFile before connecting.
	CABucket string
	CAKey    string

	// NativeLookup is false on deployments without correlated $lookup.
	NativeLookup  bool
	TxMaxAttempts int
}

const defaultCAFile = "cert.pem"

func OptionsFromEnv() Options {
	opts := Options{
		URI:              os.Getenv(common.EnvKeyOPDBMongoURI),
		Hostname:         os.Getenv(common.EnvKeyOPDBDbHostname),
		Port:             common.EnvInt(common.EnvKeyOPDBDbPort, 27017),
		Username:         os.Getenv(common.EnvKeyOPDBDbUsername),
		Password:         os.Getenv(common.EnvKeyOPDBDbPassword),
		Database:         os.Getenv(common.EnvKeyOPDBDbName),
		TLS:              common.EnvBool(common.EnvKeyOPDBDbTLS, false),
		TLSCAFile:        os.Getenv(common.EnvKeyOPDBDbTLSCAFile),
		ReplicaSet:       os.Getenv(common.EnvKeyOPDBDbReplicaSet),
		DirectConnection: common.EnvBool(common.EnvKeyOPDBDbDirect, false),
		CABucket:         os.Getenv(common.EnvKeyOPDBCABucket),
		CAKey:            os.Getenv(common.EnvKeyOPDBCAKey),
		NativeLookup:     common.EnvBool(common.EnvKeyOPDBNativeLookup, true),
		TxMaxAttempts:    common.EnvInt(common.EnvKeyOPDBTxMaxAttempts, common.DefaultTxMaxAttempts),
	}
	if opts.Hostname == "" {
		opts.Hostname = "localhost"
	}
	if opts.Database == "" {
		opts.Database = common.DefaultDatabaseName
	}
	if opts.TLS && opts.TLSCAFile == "" && opts.CABucket != "" {
		opts.TLSCAFile = defaultCAFile
	}
	return opts
}

// BuildURI returns URI when set, otherwise assembles a mongodb:// URI from
// the individual connection settings.
func (o Options) BuildURI() string {
	if o.URI != "" {
		return o.URI
	}

	u := url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(o.Hostname, strconv.Itoa(o.Port)),
		Path:   "/",
	}
	if o.Username != "" && o.Password != "" {
		u.User = url.UserPassword(o.Username, o.Password)
	}

	q := url.Values{}
	if o.TLS {
		q.Set("tls", "true")
		if o.TLSCAFile != "" {
			q.Set("tlsCAFile", o.TLSCAFile)
		}
	}
	if o.ReplicaSet != "" {
		q.Set("replicaSet", o.ReplicaSet)
	}
	if o.DirectConnection {
		q.Set("directConnection", "true")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Redacted is BuildURI with the password masked, for logging.
func (o Options) Redacted() string {
	uri := o.BuildURI()
	u, err := url.Parse(uri)
	if err != nil {
		return fmt.Sprintf("<unparseable uri: %d bytes>", len(uri))
	}
	return u.Redacted()
}
