package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name LiveSource --dir ../domain/match --output domain/match --outpkg matchmock --filename live_source_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name ScheduleSource --dir ../domain/match --output domain/match --outpkg matchmock --filename schedule_source_mock.go
