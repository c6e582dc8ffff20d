package cdr

import (
	"io"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/pkg/errors"

	"github.com/free5gc/ocs/internal/logger"
)

const ftpDialTimeout = 5 * time.Second

// FTPUploader stores each CDR file on a remote FTP server, one connection per
// upload.
type FTPUploader struct {
	addr     string
	user     string
	password string
}

var _ Uploader = (*FTPUploader)(nil)

func NewFTPUploader(addr, user, password string) *FTPUploader {
	return &FTPUploader{addr: addr, user: user, password: password}
}

func (u *FTPUploader) login() (*ftp.ServerConn, error) {
	c, err := ftp.Dial(u.addr, ftp.DialWithTimeout(ftpDialTimeout))
	if err != nil {
		return nil, errors.Wrapf(err, "dial FTP server %s", u.addr)
	}

	if err := c.Login(u.user, u.password); err != nil {
		logger.CdrLog.Warnf("Login FTP server %s Fail", u.addr)
		if quitErr := c.Quit(); quitErr != nil {
			logger.CdrLog.Debugf("FTP quit: %v", quitErr)
		}
		return nil, errors.Wrapf(err, "login FTP server %s", u.addr)
	}
	logger.CdrLog.Debugf("Login FTP server %s", u.addr)
	return c, nil
}

func (u *FTPUploader) Upload(name string, r io.Reader) error {
	c, err := u.login()
	if err != nil {
		return err
	}
	defer func() {
		if quitErr := c.Quit(); quitErr != nil {
			logger.CdrLog.Debugf("FTP quit: %v", quitErr)
		}
	}()

	if err := c.Stor(name, r); err != nil {
		return errors.Wrapf(err, "store %s", name)
	}
	return nil
}
