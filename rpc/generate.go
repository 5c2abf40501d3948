package rpc

//go:generate protoc -I ../proto --go_out=.. --go_opt=module=kartcore --go-grpc_out=.. --go-grpc_opt=module=kartcore kartcore/v1/reservations.proto
