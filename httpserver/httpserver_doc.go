/*
Package httpserver runs the SSH key server's HTTP listeners.

It mounts the key routes from api/keyhandler and adds the operational
endpoints every deployment needs:

  - GET /livez - Liveness check
  - GET /readyz - Readiness check, fails while draining or when the key
    directory is no longer usable
  - GET /drain - Mark the server as not ready
  - GET /undrain - Mark the server as ready again
  - /debug/* - pprof, only with EnablePprof

Every route is wrapped in the flashbots/go-utils request logger. Prometheus
metrics are served by a separate listener on MetricsAddr.

Example usage:

	store, err := storage.NewFileKeyStore(keyDir, cryptoutils.NewMagicDetector(), logger)
	if err != nil {
	    return err
	}

	srv, err := httpserver.New(cfg, keyhandler.NewHandler(store, logger), store)
	if err != nil {
	    return err
	}
	srv.RunInBackground()
	defer srv.Shutdown()
*/
package httpserver
