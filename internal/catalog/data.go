package catalog

import "github.com/digit2ai/CRM-Co-Pilot/internal/blueprint"

var crmTree = blueprint.Tree{Sprints: []blueprint.SprintDef{
	{
		Name:     "Sprint 1: Foundation & Setup",
		Goal:     "Establish project foundation and database structure",
		Duration: "2 weeks",
		Epics: []blueprint.EpicDef{{
			Code: "FND",
			Name: "Foundation",
			Goal: "Project foundation and infrastructure",
			Stories: []blueprint.StoryDef{
				{Title: "Database Schema Design", Description: "Design database schema for contacts, leads, and activities", Points: 8, Priority: blueprint.PriorityHigh,
					Prompt: "Create a comprehensive database schema that supports contact management, lead tracking, and activity logging with proper relationships and indexing"},
				{Title: "User Authentication System", Description: "Implement secure user login and registration", Points: 5, Priority: blueprint.PriorityHigh,
					Prompt: "Build a secure authentication system with password hashing, session management, and role-based access control"},
				{Title: "Basic UI Framework", Description: "Set up responsive UI framework", Points: 5, Priority: blueprint.PriorityMedium,
					Prompt: "Create a responsive UI framework using modern CSS and JavaScript that will serve as the foundation for all CRM interfaces"},
				{Title: "Development Environment", Description: "Configure development and deployment environment", Points: 3, Priority: blueprint.PriorityHigh,
					Prompt: "Set up development environment with proper tooling, testing framework, and deployment pipeline for efficient development workflow"},
			},
		}},
	},
	{
		Name:     "Sprint 2: Core CRM Features",
		Goal:     "Implement essential CRM functionality",
		Duration: "3 weeks",
		Epics: []blueprint.EpicDef{{
			Code: "CRM",
			Name: "Core CRM",
			Goal: "Essential CRM features for contact and lead management",
			Stories: []blueprint.StoryDef{
				{Title: "Contact Management", Description: "Create, read, update, delete contacts with detailed information", Points: 13, Priority: blueprint.PriorityHigh,
					Prompt: "Implement comprehensive contact management with fields for personal info, company details, contact preferences, and custom fields"},
				{Title: "Lead Tracking System", Description: "Track leads through sales pipeline stages", Points: 8, Priority: blueprint.PriorityHigh,
					Prompt: "Build a lead tracking system with customizable pipeline stages, lead scoring, and conversion tracking"},
				{Title: "Activity Logging", Description: "Log calls, emails, meetings, and other interactions", Points: 8, Priority: blueprint.PriorityMedium,
					Prompt: "Create an activity logging system that captures all customer interactions with timestamps, notes, and follow-up reminders"},
				{Title: "Search and Filtering", Description: "Advanced search and filtering capabilities", Points: 5, Priority: blueprint.PriorityMedium,
					Prompt: "Implement advanced search functionality with filters for contact properties, lead status, and activity history"},
			},
		}},
	},
	{
		Name:     "Sprint 3: Communication Tools",
		Goal:     "Add communication and follow-up features",
		Duration: "2 weeks",
		Epics: []blueprint.EpicDef{{
			Code: "COM",
			Name: "Communication",
			Goal: "Communication tools and automation",
			Stories: []blueprint.StoryDef{
				{Title: "Email Integration", Description: "Send and track emails directly from CRM", Points: 8, Priority: blueprint.PriorityHigh,
					Prompt: "Integrate email functionality with template support, tracking, and automatic logging of sent emails"},
				{Title: "Task Management", Description: "Create and manage follow-up tasks", Points: 5, Priority: blueprint.PriorityMedium,
					Prompt: "Build a task management system for follow-ups, reminders, and action items with due dates and priority levels"},
				{Title: "Notification System", Description: "Real-time notifications and alerts", Points: 5, Priority: blueprint.PriorityMedium,
					Prompt: "Create a notification system for important events, overdue tasks, and system alerts"},
				{Title: "Reporting Dashboard", Description: "Basic analytics and reporting", Points: 8, Priority: blueprint.PriorityLow,
					Prompt: "Build a reporting dashboard with key metrics, charts, and exportable reports for sales performance analysis"},
			},
		}},
	},
}}

var ecommerceTree = blueprint.Tree{Sprints: []blueprint.SprintDef{
	{
		Name:     "Sprint 1: Core Commerce Setup",
		Goal:     "Basic ecommerce foundation with product catalog",
		Duration: "3 weeks",
		Epics: []blueprint.EpicDef{{
			Code: "PRD",
			Name: "Product Management",
			Goal: "Product catalog and inventory management",
			Stories: []blueprint.StoryDef{
				{Title: "Product Catalog Schema", Description: "Design product database with categories, variants, and pricing", Points: 8, Priority: blueprint.PriorityHigh,
					Prompt: "Create a flexible product catalog schema supporting multiple variants, categories, pricing tiers, and inventory tracking"},
				{Title: "Product CRUD Operations", Description: "Create, read, update, delete products", Points: 8, Priority: blueprint.PriorityHigh,
					Prompt: "Implement full CRUD operations for products with image upload, SEO fields, and variant management"},
				{Title: "Category Management", Description: "Hierarchical product categories", Points: 5, Priority: blueprint.PriorityMedium,
					Prompt: "Build a hierarchical category system with nested categories, category images, and SEO optimization"},
				{Title: "Inventory Tracking", Description: "Track product inventory and stock levels", Points: 5, Priority: blueprint.PriorityMedium,
					Prompt: "Implement inventory tracking with stock alerts, reorder points, and automatic stock level updates"},
			},
		}},
	},
	{
		Name:     "Sprint 2: Shopping Experience",
		Goal:     "Customer-facing shopping features",
		Duration: "3 weeks",
		Epics: []blueprint.EpicDef{{
			Code: "SHOP",
			Name: "Shopping Features",
			Goal: "Core shopping cart and checkout functionality",
			Stories: []blueprint.StoryDef{
				{Title: "Product Display Pages", Description: "Product listing and detail pages", Points: 8, Priority: blueprint.PriorityHigh,
					Prompt: "Create responsive product pages with image galleries, detailed descriptions, reviews, and related products"},
				{Title: "Shopping Cart", Description: "Add to cart, modify quantities, and cart persistence", Points: 8, Priority: blueprint.PriorityHigh,
					Prompt: "Build a shopping cart system with quantity updates, item removal, cart persistence, and guest checkout support"},
				{Title: "User Registration", Description: "Customer account creation and management", Points: 5, Priority: blueprint.PriorityMedium,
					Prompt: "Implement customer registration with profile management, order history, and wishlist functionality"},
				{Title: "Search and Filters", Description: "Product search with filtering options", Points: 8, Priority: blueprint.PriorityMedium,
					Prompt: "Create advanced product search with filters for price, category, brand, ratings, and other attributes"},
			},
		}},
	},
	{
		Name:     "Sprint 3: Payment & Orders",
		Goal:     "Complete the purchase flow",
		Duration: "2 weeks",
		Epics: []blueprint.EpicDef{{
			Code: "PAY",
			Name: "Payment Processing",
			Goal: "Secure payment processing and order management",
			Stories: []blueprint.StoryDef{
				{Title: "Payment Gateway Integration", Description: "Integrate with Stripe or similar payment processor", Points: 13, Priority: blueprint.PriorityHigh,
					Prompt: "Integrate secure payment processing with support for credit cards, digital wallets, and fraud protection"},
				{Title: "Order Management", Description: "Process and track customer orders", Points: 8, Priority: blueprint.PriorityHigh,
					Prompt: "Build order management system with status tracking, order history, and customer notifications"},
				{Title: "Shipping Calculator", Description: "Calculate shipping costs and delivery options", Points: 5, Priority: blueprint.PriorityMedium,
					Prompt: "Implement shipping cost calculation with multiple carrier options and delivery time estimates"},
				{Title: "Order Confirmation", Description: "Email confirmations and receipts", Points: 3, Priority: blueprint.PriorityMedium,
					Prompt: "Create automated order confirmation emails with receipt details and tracking information"},
			},
		}},
	},
}}

var mobileTree = blueprint.Tree{Sprints: []blueprint.SprintDef{
	{
		Name:     "Sprint 1: Mobile App Foundation",
		Goal:     "Set up mobile development environment and core structure",
		Duration: "2 weeks",
		Epics: []blueprint.EpicDef{{
			Code: "MOB",
			Name: "Mobile Foundation",
			Goal: "Mobile app foundation and core components",
			Stories: []blueprint.StoryDef{
				{Title: "React Native Setup", Description: "Initialize React Native project with navigation", Points: 5, Priority: blueprint.PriorityHigh,
					Prompt: "Set up React Native development environment with navigation, state management, and development tools"},
				{Title: "UI Component Library", Description: "Create reusable UI components", Points: 8, Priority: blueprint.PriorityHigh,
					Prompt: "Build a comprehensive UI component library with consistent styling, theming, and responsive design"},
				{Title: "Authentication Screens", Description: "Login, registration, and onboarding flows", Points: 8, Priority: blueprint.PriorityHigh,
					Prompt: "Create authentication screens with form validation, biometric login options, and smooth onboarding experience"},
				{Title: "Data Storage Setup", Description: "Local storage and API integration setup", Points: 5, Priority: blueprint.PriorityMedium,
					Prompt: "Implement local data storage with offline capabilities and API integration for data synchronization"},
			},
		}},
	},
	{
		Name:     "Sprint 2: Core App Features",
		Goal:     "Implement main application functionality",
		Duration: "3 weeks",
		Epics: []blueprint.EpicDef{{
			Code: "CORE",
			Name: "Core Features",
			Goal: "Main application functionality and user interactions",
			Stories: []blueprint.StoryDef{
				{Title: "Main Dashboard", Description: "Central hub with key information and actions", Points: 8, Priority: blueprint.PriorityHigh,
					Prompt: "Design and implement a main dashboard with widgets, quick actions, and personalized content"},
				{Title: "Data Management", Description: "CRUD operations for main app entities", Points: 13, Priority: blueprint.PriorityHigh,
					Prompt: "Implement comprehensive data management with offline support and conflict resolution"},
				{Title: "Push Notifications", Description: "Local and remote push notification system", Points: 8, Priority: blueprint.PriorityMedium,
					Prompt: "Set up push notification system with scheduling, deep linking, and user preferences"},
				{Title: "Settings and Preferences", Description: "User settings and app configuration", Points: 5, Priority: blueprint.PriorityLow,
					Prompt: "Create settings interface for user preferences, app configuration, and account management"},
			},
		}},
	},
	{
		Name:     "Sprint 3: Polish and Deployment",
		Goal:     "Testing, optimization, and app store deployment",
		Duration: "2 weeks",
		Epics: []blueprint.EpicDef{{
			Code: "DEPLOY",
			Name: "Deployment",
			Goal: "App optimization, testing, and store deployment",
			Stories: []blueprint.StoryDef{
				{Title: "Performance Optimization", Description: "Optimize app performance and bundle size", Points: 8, Priority: blueprint.PriorityHigh,
					Prompt: "Optimize app performance with code splitting, image optimization, and memory management"},
				{Title: "Testing Suite", Description: "Unit tests, integration tests, and E2E testing", Points: 8, Priority: blueprint.PriorityMedium,
					Prompt: "Implement comprehensive testing with unit tests, integration tests, and automated UI testing"},
				{Title: "App Store Preparation", Description: "Prepare for iOS and Android app store submission", Points: 5, Priority: blueprint.PriorityHigh,
					Prompt: "Prepare app store assets, compliance documentation, and deployment configuration for both iOS and Android"},
				{Title: "Analytics Integration", Description: "User analytics and crash reporting", Points: 3, Priority: blueprint.PriorityLow,
					Prompt: "Integrate analytics tools for user behavior tracking and crash reporting for ongoing app improvement"},
			},
		}},
	},
}}

var generalTree = blueprint.Tree{Sprints: []blueprint.SprintDef{
	{
		Name:     "Sprint 1: Project Foundation",
		Goal:     "Establish project structure and core infrastructure",
		Duration: "2 weeks",
		Epics: []blueprint.EpicDef{{
			Code: "FND",
			Name: "Foundation",
			Goal: "Project setup and infrastructure",
			Stories: []blueprint.StoryDef{
				{Title: "Project Setup", Description: "Initialize project structure and dependencies", Points: 5, Priority: blueprint.PriorityHigh,
					Prompt: "Set up project structure with proper tooling, dependencies, and development environment configuration"},
				{Title: "Database Design", Description: "Design and implement data models", Points: 8, Priority: blueprint.PriorityHigh,
					Prompt: "Design database schema with proper relationships, constraints, and indexing for optimal performance"},
				{Title: "Authentication System", Description: "User authentication and authorization", Points: 8, Priority: blueprint.PriorityMedium,
					Prompt: "Implement secure user authentication with session management and role-based access control"},
				{Title: "Basic UI Framework", Description: "Set up frontend framework and styling", Points: 5, Priority: blueprint.PriorityMedium,
					Prompt: "Create a responsive UI framework with consistent styling, component library, and accessibility features"},
			},
		}},
	},
	{
		Name:     "Sprint 2: Core Functionality",
		Goal:     "Implement main application features",
		Duration: "3 weeks",
		Epics: []blueprint.EpicDef{{
			Code: "CORE",
			Name: "Core Features",
			Goal: "Main application functionality",
			Stories: []blueprint.StoryDef{
				{Title: "Data Management", Description: "CRUD operations for main entities", Points: 13, Priority: blueprint.PriorityHigh,
					Prompt: "Implement comprehensive data management with validation, error handling, and data integrity checks"},
				{Title: "User Interface", Description: "Main user interface screens and interactions", Points: 13, Priority: blueprint.PriorityHigh,
					Prompt: "Create intuitive user interfaces with responsive design, form validation, and user-friendly interactions"},
				{Title: "Business Logic", Description: "Core business rules and processes", Points: 8, Priority: blueprint.PriorityHigh,
					Prompt: "Implement business logic with proper validation, workflow management, and business rule enforcement"},
				{Title: "Search and Filtering", Description: "Search functionality and data filtering", Points: 5, Priority: blueprint.PriorityMedium,
					Prompt: "Add search capabilities with advanced filtering, sorting, and pagination for better data discovery"},
			},
		}},
	},
	{
		Name:     "Sprint 3: Enhancement and Integration",
		Goal:     "Add advanced features and third-party integrations",
		Duration: "2 weeks",
		Epics: []blueprint.EpicDef{{
			Code: "ENH",
			Name: "Enhancements",
			Goal: "Advanced features and integrations",
			Stories: []blueprint.StoryDef{
				{Title: "API Integration", Description: "Integrate with external APIs and services", Points: 8, Priority: blueprint.PriorityMedium,
					Prompt: "Integrate with external APIs for enhanced functionality with proper error handling and rate limiting"},
				{Title: "Reporting Features", Description: "Analytics and reporting capabilities", Points: 8, Priority: blueprint.PriorityMedium,
					Prompt: "Build reporting features with data visualization, export capabilities, and scheduled reports"},
				{Title: "Performance Optimization", Description: "Optimize application performance", Points: 5, Priority: blueprint.PriorityLow,
					Prompt: "Optimize application performance with caching, database optimization, and frontend performance improvements"},
				{Title: "Testing and Documentation", Description: "Comprehensive testing and documentation", Points: 5, Priority: blueprint.PriorityLow,
					Prompt: "Create comprehensive test suite and documentation for maintainability and future development"},
			},
		}},
	},
}}
