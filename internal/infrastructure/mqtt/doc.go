// Package mqtt publishes AssetFlow lifecycle events to an MQTT broker.
//
// Every committed approve, reject, return, status change or removal is
// sent as JSON on {prefix}/events/{event_type}/{device_id}. The service's
// own presence is a retained message on {prefix}/system/status, backed by
// a Last Will so subscribers see "offline" if the process dies.
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishEvent("request.approved", deviceID, event)
//
// Publishing is best-effort from the lifecycle's point of view: the
// coordinator logs a failed publish and the committed operation stands.
package mqtt
